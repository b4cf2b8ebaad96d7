package scheduler

import (
	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/internal/frontier"
	"github.com/rohmanhakim/webgrab/pkg/failure"
)

// Run modes, recorded in export stats.
const (
	ModeSingle = "single"
	ModeCrawl  = "crawl"
	ModeBatch  = "batch"
)

// skipExtensions lists file extensions that are never worth fetching
// during a crawl. Binary assets are linked to constantly and parsing
// them yields nothing.
var skipExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
	"zip": {}, "rar": {}, "gz": {}, "tar": {},
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "svg": {}, "ico": {}, "webp": {},
	"mp3": {}, "mp4": {}, "avi": {}, "mov": {},
	"css": {}, "js": {},
	"exe": {}, "dmg": {},
}

// fetchOutcome carries a worker's result back to the crawl control
// loop. Exactly one of record/err is meaningful.
type fetchOutcome struct {
	token  frontier.CrawlToken
	record extractor.PageRecord
	err    failure.ClassifiedError
}

// CrawlStats counts what happened to discovered URLs over one crawl.
type CrawlStats struct {
	PagesFetched int
	PagesFailed  int
	LinksSeen    int
	Disallowed   int
	Skipped      int
}
