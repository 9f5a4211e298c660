package artifact_source

import (
	"fmt"
	"regexp"
	"time"
)

var logSuffixRegex = regexp.MustCompile(`\.log(\.gz)?$`)

// IsLogSuffix reports whether an object key suffix names an access log file
func IsLogSuffix(suffix string) bool {
	return logSuffixRegex.MatchString(suffix)
}

// DatePrefixes returns the listing prefixes for the day before, the day of and the day after the watermark:
// [{s3Prefix}/]AWSLogs/{accountID}/elasticloadbalancing/{region}/yyyy/mm/dd/
func DatePrefixes(s3Prefix, accountID, region string, watermark time.Time) []string {
	base := fmt.Sprintf("AWSLogs/%s/elasticloadbalancing/%s/", accountID, region)
	if s3Prefix != "" {
		base = s3Prefix + "/" + base
	}

	watermark = watermark.UTC()
	days := []time.Time{watermark.Add(-24 * time.Hour), watermark, watermark.Add(24 * time.Hour)}
	prefixes := make([]string, len(days))
	for i, d := range days {
		prefixes[i] = base + d.Format("2006/01/02/")
	}
	return prefixes
}
