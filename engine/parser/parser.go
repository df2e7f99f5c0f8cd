// Package parser finds navigation tags in chat messages.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/worldnav/types"
)

var (
	proposeRe    = regexp.MustCompile(`(?i)\[propose_location:\s*(\d+)\s*,\s*(\d+)\s*\]`)
	confirmRe    = regexp.MustCompile(`(?i)\[confirm\]`)
	clearRe      = regexp.MustCompile(`(?i)\[clear\s*location\]`)
	coordinateRe = regexp.MustCompile(`\[(\d+),\s*(\d+)\]`)
)

// AITags is what the scanner recognizes in an AI-authored message.
type AITags struct {
	Proposal *types.Point
	Text     string // message with proposal tags removed
}

// UserTags is what the scanner recognizes in a user-authored message.
type UserTags struct {
	Clear      bool
	Confirm    bool
	Coordinate *types.Point
	Text       string // message with clear/confirm tokens removed
}

// Recognized reports whether any navigation token was present.
func (u UserTags) Recognized() bool {
	return u.Clear || u.Confirm || u.Coordinate != nil
}

// ParseAI scans an AI message for a location proposal. The first proposal
// wins; every proposal tag is stripped. A proposal whose coordinates do
// not fit a float64 is not recognized and the text is left as is.
func ParseAI(text string) AITags {
	tags := AITags{Text: text}
	m := proposeRe.FindStringSubmatch(text)
	if m == nil {
		return tags
	}
	if tags.Proposal = pointFromMatch(m); tags.Proposal != nil {
		tags.Text = strip(proposeRe, text)
	}
	return tags
}

// ParseUser scans a user message for clear, confirm and explicit
// coordinate tags. Clear and confirm tokens are stripped; the coordinate
// stays in the text since it is part of what the user wrote.
func ParseUser(text string) UserTags {
	tags := UserTags{Text: text}
	if clearRe.MatchString(text) {
		tags.Clear = true
		tags.Text = strip(clearRe, tags.Text)
	}
	if confirmRe.MatchString(text) {
		tags.Confirm = true
		tags.Text = strip(confirmRe, tags.Text)
	}
	if m := coordinateRe.FindStringSubmatch(text); m != nil {
		tags.Coordinate = pointFromMatch(m)
	}
	return tags
}

// strip removes every match and trims the ends. Inner whitespace is left
// alone.
func strip(re *regexp.Regexp, text string) string {
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}

// pointFromMatch reads the two digit groups. Integers too long for an int
// still parse; only values beyond float64 range fail.
func pointFromMatch(m []string) *types.Point {
	x, errX := strconv.ParseFloat(m[1], 64)
	y, errY := strconv.ParseFloat(m[2], 64)
	if errX != nil || errY != nil {
		return nil
	}
	return &types.Point{X: x, Y: y}
}
