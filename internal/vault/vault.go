package vault

import (
	"regexp"
	"strings"
	"sync"
)

// Vault mirrors the journal into plain files under basePath
type Vault struct {
	basePath string
	logLock  sync.Mutex // serializes mood log appends
}

// NewVault creates a new Vault instance
func NewVault(basePath string) *Vault {
	return &Vault{basePath: basePath}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns    = regexp.MustCompile(`-+`)
)

// slugify turns an owner name into a file name fragment
func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.Trim(dashRuns.ReplaceAllString(s, "-"), "-")

	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	if s == "" {
		s = "owner"
	}
	return s
}
