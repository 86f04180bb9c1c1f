package dumps

import (
	"fmt"
	"regexp"
)

// DataType identifies one of the two dump collections on the server and
// carries the listing pattern for its filenames.
type DataType struct {
	Name        string
	BaseURL     string
	FilePattern *regexp.Regexp
}

var (
	// Pageviews holds hourly per-page view counts, one gzip file per hour.
	Pageviews = DataType{
		Name:        "pageviews",
		BaseURL:     "https://dumps.wikimedia.org/other/pageviews/",
		FilePattern: regexp.MustCompile(`<a href="(pageviews-\d{10}\.gz)"`),
	}
	// PagecountsEZ holds the compressed daily variant, one bzip2 file per day.
	PagecountsEZ = DataType{
		Name:        "pagecounts-ez",
		BaseURL:     "https://dumps.wikimedia.org/other/pagecounts-ez/",
		FilePattern: regexp.MustCompile(`<a href="(pagecounts-\d{8}\.bz2)"`),
	}
)

// ParseDataType resolves a CLI type name, accepting "ez" as the short alias
// for the compressed collection.
func ParseDataType(name string) (DataType, error) {
	switch name {
	case "pageviews", "":
		return Pageviews, nil
	case "ez", "pagecounts-ez":
		return PagecountsEZ, nil
	}
	return DataType{}, fmt.Errorf("unknown data type %q (expected pageviews or ez)", name)
}

var (
	periodRegex  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearPattern  = regexp.MustCompile(`<a href="(\d{4})/"`)
	monthPattern = regexp.MustCompile(`<a href="(\d{4}-\d{2})/"`)
)

// ValidatePeriodFormat reports whether period is in YYYY-MM form.
func ValidatePeriodFormat(period string) bool {
	return periodRegex.MatchString(period)
}
