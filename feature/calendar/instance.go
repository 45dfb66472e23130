package calendar

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// EventInstance is an occurrence normalized to UTC with a stable identity.
type EventInstance struct {
	SourceUID  string    `json:"source_uid"`
	InstanceID string    `json:"instance_id"`
	Summary    string    `json:"summary"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	AllDay     bool      `json:"all_day"`
	RawText    string    `json:"-"`
}

// NewInstance normalizes an occurrence. Date-only values become midnight UTC,
// floating values are taken as UTC and zoned values are converted.
func NewInstance(occ Occurrence) EventInstance {
	start := occ.Start.UTC()
	end := occ.End.UTC()
	if end.IsZero() {
		end = start
	}

	return EventInstance{
		SourceUID:  occ.SourceUID,
		InstanceID: InstanceID(occ.SourceUID, start),
		Summary:    occ.Summary,
		Start:      start,
		End:        end,
		AllDay:     occ.AllDay,
		RawText:    occ.RawText,
	}
}

// InstanceID derives the identity of one occurrence of a series: the hex MD5
// of the series UID, an underscore and the UTC start date as YYYYMMDD.
// Two occurrences of a series on the same UTC day share an identity.
func InstanceID(sourceUID string, start time.Time) string {
	sum := md5.Sum([]byte(sourceUID + "_" + start.UTC().Format("20060102")))
	return hex.EncodeToString(sum[:])
}
