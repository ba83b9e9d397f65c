package domain

import (
	"fmt"
	"sort"
)

// SortVideosByPosition returns a copy of videos ordered by Position
// ascending, with ties (duplicate or missing positions) broken by ID so
// the ordering is deterministic between requests.
func SortVideosByPosition(videos []Video) []Video {
	ordered := make([]Video, len(videos))
	copy(ordered, videos)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// ComputeLockState determines which of a course's videos are playable for
// a user. The first video in position order is never locked; every later
// video is locked unless the immediately preceding video has been
// completed. Pure function of the video list and the completion map.
func ComputeLockState(videos []Video, progressByVideoID map[uint]VideoProgress) map[uint]bool {
	locked := make(map[uint]bool, len(videos))
	ordered := SortVideosByPosition(videos)
	for i, v := range ordered {
		if i == 0 {
			locked[v.ID] = false
			continue
		}
		prev := ordered[i-1]
		locked[v.ID] = !progressByVideoID[prev.ID].Completed
	}
	return locked
}

// FormatDuration renders a duration in seconds as "MM:SS" for the
// dashboard, or "--:--" when the duration has not been observed yet.
func FormatDuration(seconds *int) string {
	if seconds == nil || *seconds < 0 {
		return "--:--"
	}
	mins := *seconds / 60
	secs := *seconds % 60
	return fmt.Sprintf("%02d:%02d", mins, secs)
}
