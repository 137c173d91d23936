package redis

import (
	"strconv"

	"github.com/MrSnakeDoc/readlog/internal/domain"
)

const (
	// KeyPrefixRecord prefixes the JSON value of each record.
	KeyPrefixRecord = "readlog:record:"
	// KeySequence is the ID counter.
	KeySequence = "readlog:records:seq"
	// KeyAllRecords is a sorted set of every record ID, scored by ID.
	KeyAllRecords = "readlog:records:all"
	// KeyPrefixStatus prefixes the per-status sorted sets, scored by UpdatedAt in Unix ms.
	KeyPrefixStatus = "readlog:records:status:"
)

// RecordKey returns the key holding a record.
func RecordKey(id int64) string {
	return KeyPrefixRecord + member(id)
}

// StatusKey returns the index key for one status.
func StatusKey(s domain.Status) string {
	return KeyPrefixStatus + string(s)
}

func member(id int64) string {
	return strconv.FormatInt(id, 10)
}
