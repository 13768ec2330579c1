// Package commands contains the core logic for building a codebase report.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/codedoc/internal/output"
	"github.com/temirov/codedoc/internal/types"
)

// ErrRootNotDirectory indicates the walk root is missing or is not a directory.
var ErrRootNotDirectory = errors.New("root is not a directory")

const (
	// warningSkipSubdirMessage is logged when a subdirectory cannot be listed.
	warningSkipSubdirMessage = "skipping unreadable directory"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"

	// errorRootDirectoryFormat is used when the root cannot be walked.
	errorRootDirectoryFormat = "walking %s: %w"
)

// Evaluator decides whether a slash-separated path relative to the walk root is excluded.
type Evaluator interface {
	IsIgnored(relativePath string, isDirectory bool) bool
}

// TreeWalker enumerates a directory tree in sorted order.
type TreeWalker struct {
	Evaluator Evaluator
	Logger    *zap.Logger
}

// Walk enumerates rootDirectory with a default TreeWalker.
func Walk(rootDirectory string, evaluator Evaluator) (types.TreeListing, error) {
	walker := TreeWalker{Evaluator: evaluator}
	return walker.Walk(rootDirectory)
}

// Walk returns the nested tree lines and the flat list of included files
// below rootDirectory. Only an unreadable root is an error; unreadable
// subdirectories contribute an empty subtree.
func (walker TreeWalker) Walk(rootDirectory string) (types.TreeListing, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectory)
	if absolutePathError != nil {
		return types.TreeListing{}, fmt.Errorf(errorAbsolutePathFormat, rootDirectory, absolutePathError)
	}
	rootInfo, statError := os.Stat(absoluteRootPath)
	if statError != nil {
		return types.TreeListing{}, fmt.Errorf(errorRootDirectoryFormat, absoluteRootPath, errors.Join(ErrRootNotDirectory, statError))
	}
	if !rootInfo.IsDir() {
		return types.TreeListing{}, fmt.Errorf(errorRootDirectoryFormat, absoluteRootPath, ErrRootNotDirectory)
	}
	rootEntries, readError := readSortedDirectory(absoluteRootPath)
	if readError != nil {
		return types.TreeListing{}, fmt.Errorf(errorRootDirectoryFormat, absoluteRootPath, readError)
	}

	logger := walker.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	state := &walkState{evaluator: walker.Evaluator, logger: logger}
	state.visitEntries(absoluteRootPath, "", rootEntries, "", 0)
	return types.TreeListing{Lines: state.lines, Files: state.files}, nil
}

type walkState struct {
	evaluator Evaluator
	logger    *zap.Logger
	lines     []string
	files     []types.TraversalEntry
}

func (state *walkState) visitDirectory(absoluteDirectoryPath, relativeDirectoryPath, indent string, depth int) {
	directoryEntries, readError := readSortedDirectory(absoluteDirectoryPath)
	if readError != nil {
		state.logger.Warn(warningSkipSubdirMessage, zap.String("path", relativeDirectoryPath), zap.Error(readError))
		return
	}
	state.visitEntries(absoluteDirectoryPath, relativeDirectoryPath, directoryEntries, indent, depth)
}

func (state *walkState) visitEntries(absoluteDirectoryPath, relativeDirectoryPath string, directoryEntries []os.DirEntry, indent string, depth int) {
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		relativeEntryPath := path.Join(relativeDirectoryPath, entryName)
		absoluteEntryPath := filepath.Join(absoluteDirectoryPath, entryName)
		isDirectory := directoryEntry.IsDir()
		linkedDirectory := !isDirectory && isSymlinkToDirectory(directoryEntry, absoluteEntryPath)
		if state.evaluator != nil && state.evaluator.IsIgnored(relativeEntryPath, isDirectory || linkedDirectory) {
			continue
		}
		// Linked directories are listed but never followed.
		if linkedDirectory {
			state.lines = append(state.lines, output.TreeDirectoryLine(indent, entryName))
			continue
		}
		if isDirectory {
			state.lines = append(state.lines, output.TreeDirectoryLine(indent, entryName))
			state.visitDirectory(absoluteEntryPath, relativeEntryPath, indent+output.TreeIndentUnit, depth+1)
			continue
		}
		state.lines = append(state.lines, output.TreeFileLine(indent, entryName))
		state.files = append(state.files, types.TraversalEntry{
			RelativePath: relativeEntryPath,
			AbsolutePath: absoluteEntryPath,
			Kind:         types.EntryKindFile,
			Included:     true,
			Depth:        depth,
		})
	}
}

func isSymlinkToDirectory(directoryEntry os.DirEntry, absoluteEntryPath string) bool {
	if directoryEntry.Type()&os.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(absoluteEntryPath)
	return statError == nil && targetInfo.IsDir()
}

// readSortedDirectory lists a directory ordered by byte-wise file name.
func readSortedDirectory(absoluteDirectoryPath string) ([]os.DirEntry, error) {
	return os.ReadDir(absoluteDirectoryPath)
}
