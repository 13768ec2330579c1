package ignore

import (
	"path/filepath"
	"strings"

	gitignorelines "github.com/sabhiram/go-gitignore"

	"github.com/temirov/codedoc/internal/utils"
)

// builtInDenylistPatterns are never includable, whatever the ignore files say.
var builtInDenylistPatterns = []string{
	"*.pyc",
	"__pycache__",
	".git",
	".DS_Store",
	"node_modules",
	"*.min.js",
	"*.min.css",
	"*.map",
	"*.bundle.js",
	"build",
	"dist",
	".next",
	".nuxt",
	".cache",
	".parcel-cache",
	".vscode",
	".idea",
}

// generatedReportPatterns match reports produced by earlier runs.
var generatedReportPatterns = []string{
	"codebase_documentation*.md",
	"codebase_documentation*.txt",
}

// GeneratedReportPatterns returns a copy of the default self-exclusion patterns.
func GeneratedReportPatterns() []string {
	return append([]string(nil), generatedReportPatterns...)
}

// ReportName locates the report written for one configured output name.
type ReportName struct {
	// Directory is slash-separated and relative to the walk root; the root itself is "".
	Directory string
	FileName  string
}

// NewReportName locates outputPath below absoluteRootPath. Relative output paths
// are resolved against the working directory, like the report file itself. The
// second result is false when the report is written outside the root.
func NewReportName(absoluteRootPath, outputPath string) (ReportName, bool) {
	if outputPath == "" {
		return ReportName{}, false
	}
	absoluteOutputPath, absoluteError := filepath.Abs(outputPath)
	if absoluteError != nil {
		return ReportName{}, false
	}
	if !utils.IsWithinDirectory(absoluteRootPath, absoluteOutputPath) {
		return ReportName{}, false
	}
	pathSegments := utils.SplitRelativePath(utils.RelativePathOrSelf(absoluteOutputPath, absoluteRootPath))
	if len(pathSegments) == 0 {
		return ReportName{}, false
	}
	return ReportName{
		Directory: strings.Join(pathSegments[:len(pathSegments)-1], "/"),
		FileName:  pathSegments[len(pathSegments)-1],
	}, true
}

// Matches reports whether relativePath is the report itself or a copy of it
// with a _YYYYMMDD_HHMMSS timestamp before the extension. Files in other
// directories never match.
func (reportName ReportName) Matches(relativePath string) bool {
	pathSegments := utils.SplitRelativePath(relativePath)
	if len(pathSegments) == 0 || reportName.FileName == "" {
		return false
	}
	if strings.Join(pathSegments[:len(pathSegments)-1], "/") != reportName.Directory {
		return false
	}
	fileName := pathSegments[len(pathSegments)-1]
	if fileName == reportName.FileName {
		return true
	}
	extension := filepath.Ext(reportName.FileName)
	stemPrefix := strings.TrimSuffix(reportName.FileName, extension) + "_"
	if !strings.HasPrefix(fileName, stemPrefix) || !strings.HasSuffix(fileName, extension) {
		return false
	}
	timestamp := strings.TrimSuffix(strings.TrimPrefix(fileName, stemPrefix), extension)
	return utils.IsFileNameTimestamp(timestamp)
}

func compileLines(patterns []string) *gitignorelines.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return gitignorelines.CompileIgnoreLines(patterns...)
}
