// Package gitstage stages generated reports in the enclosing git repository.
package gitstage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// ErrNotInRepository indicates the report does not live inside a git work tree.
var ErrNotInRepository = errors.New("report is not inside a git repository")

const (
	errorOpenRepositoryFormat = "open repository for %s: %w"
	errorWorktreeFormat       = "open worktree for %s: %w"
	errorStageFormat          = "stage %s: %w"
)

// Stager adds files to the index of the repository that contains them.
type Stager struct {
	Logger *zap.Logger
}

// NewStager constructs a Stager logging through logger.
func NewStager(logger *zap.Logger) *Stager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stager{Logger: logger}
}

// Stage adds filePath to the index regardless of ignore rules and returns its
// path relative to the work tree root.
func (stager *Stager) Stage(filePath string) (string, error) {
	absoluteFilePath, absolutePathError := filepath.Abs(filePath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorOpenRepositoryFormat, filePath, absolutePathError)
	}

	repository, openError := git.PlainOpenWithOptions(filepath.Dir(absoluteFilePath), &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf(errorOpenRepositoryFormat, absoluteFilePath, ErrNotInRepository)
		}
		return "", fmt.Errorf(errorOpenRepositoryFormat, absoluteFilePath, openError)
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		return "", fmt.Errorf(errorWorktreeFormat, absoluteFilePath, worktreeError)
	}

	relativePath, relativeError := filepath.Rel(worktree.Filesystem.Root(), absoluteFilePath)
	if relativeError != nil {
		return "", fmt.Errorf(errorStageFormat, absoluteFilePath, relativeError)
	}
	relativePath = filepath.ToSlash(relativePath)
	if _, addError := worktree.Add(relativePath); addError != nil {
		return "", fmt.Errorf(errorStageFormat, relativePath, addError)
	}
	stager.logger().Debug("report staged", zap.String("path", relativePath))
	return relativePath, nil
}

func (stager *Stager) logger() *zap.Logger {
	if stager == nil || stager.Logger == nil {
		return zap.NewNop()
	}
	return stager.Logger
}
