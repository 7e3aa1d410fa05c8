package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	gutils "github.com/Laisky/go-utils/v6"
)

const (
	suffixLen      = 6
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// legacyPrefixes were prepended to attachment names by older uploaders.
var legacyPrefixes = []string{"privacyVideoPolicyPdf_", "creditInfoPdf_"}

// storedNameRegexp matches `{base}_{YYYY-MM-DDTHH-mm-ss-SSSZ}_{suffix}{.ext}`.
var storedNameRegexp = regexp.MustCompile(`^(.*)_\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z_[a-z0-9]{5,8}(\.[^.]*)?$`)

// GenerateStorageName returns a collision resistant object name for original.
func GenerateStorageName(original string) string {
	return generateStorageName(original, gutils.Clock.GetUTCNow(), randomSuffix())
}

// randomSuffix draws suffixLen characters from suffixAlphabet.
func randomSuffix() string {
	b := make([]byte, suffixLen)
	for i := range b {
		idx, err := gutils.SecRandInt(len(suffixAlphabet))
		if err != nil {
			idx = gutils.NewRand().Intn(len(suffixAlphabet))
		}
		b[i] = suffixAlphabet[idx]
	}

	return string(b)
}

func generateStorageName(original string, now time.Time, suffix string) string {
	base, ext := splitName(original)
	return fmt.Sprintf("%s_%s_%s%s", base, formatTimestamp(now), suffix, ext)
}

// formatTimestamp renders t like `2024-01-02T03-04-05-678Z`.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s-%03dZ", t.Format("2006-01-02T15-04-05"), t.Nanosecond()/int(time.Millisecond))
}

// splitName drops any directory part and splits off the last extension,
// dot included, so a bare trailing dot survives as ext ".".
// A leading dot does not start an extension.
func splitName(original string) (base, ext string) {
	name := original
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	} else {
		base = name
	}
	if base == "" {
		base = "file"
	}

	return base, ext
}

// RecoverOriginalName reverses GenerateStorageName and strips legacy prefixes.
// Names not produced by GenerateStorageName are returned unchanged.
func RecoverOriginalName(stored string) string {
	m := storedNameRegexp.FindStringSubmatch(stored)
	if m == nil {
		return stored
	}

	base := m[1]
	for _, prefix := range legacyPrefixes {
		if strings.HasPrefix(base, prefix) && len(base) > len(prefix) {
			base = strings.TrimPrefix(base, prefix)
			break
		}
	}

	return base + m[2]
}
