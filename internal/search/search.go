// Package search ranks a user's tasks against free text.
package search

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

// DefaultThreshold is the minimum match score kept in results.
const DefaultThreshold = 70

// Match pairs a task with its fuzzy score against the query.
type Match struct {
	Task  models.Task `json:"task"`
	Score int         `json:"score"`
}

// Tasks scores every task title against the query and returns matches at
// or above the threshold, best first. An empty query matches nothing.
func Tasks(query string, tasks []models.Task, threshold int) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var matches []Match
	for _, t := range tasks {
		score := fuzzy.TokenSetRatio(strings.ToLower(query), strings.ToLower(t.Title))
		if score >= threshold {
			matches = append(matches, Match{Task: t, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}
