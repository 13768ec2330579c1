package utils

import (
	"errors"
	"runtime/debug"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	unknownVersion      = "unknown"
	develVersionPrefix  = "devel-"
	shortCommitHashSize = 7
)

// errTagFound stops tag iteration once the HEAD tag is located.
var errTagFound = errors.New("tag found")

// GetApplicationVersion attempts to determine the application version.
// It checks Go build info first, then falls back to the Git repository enclosing
// startDirectory: a tag pointing at HEAD wins, otherwise the short HEAD hash is used.
func GetApplicationVersion(startDirectory string) string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}

	repository, openError := git.PlainOpenWithOptions(startDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return unknownVersion
	}
	headReference, headError := repository.Head()
	if headError != nil {
		return unknownVersion
	}

	headHash := headReference.Hash()
	exactTag := ""
	tagIterator, tagsError := repository.Tags()
	if tagsError == nil {
		_ = tagIterator.ForEach(func(tagReference *plumbing.Reference) error {
			targetHash := tagReference.Hash()
			if annotatedTag, tagObjectError := repository.TagObject(targetHash); tagObjectError == nil {
				taggedCommit, commitError := annotatedTag.Commit()
				if commitError != nil {
					return nil
				}
				targetHash = taggedCommit.Hash
			}
			if targetHash == headHash {
				exactTag = tagReference.Name().Short()
				return errTagFound
			}
			return nil
		})
	}
	if exactTag != "" {
		return exactTag
	}
	return develVersionPrefix + headHash.String()[:shortCommitHashSize]
}
