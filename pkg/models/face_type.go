package models

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
)

// FaceCategories are the labels the analysis prompt asks the model to choose from.
var FaceCategories = []string{
	"甜美型",
	"清冷型",
	"明艳型",
	"知性型",
	"温柔型",
	"英气型",
	"可爱型",
	"古典型",
}

// NormalizeFaceCategory snaps a near miss (a missing 型 suffix, one wrong
// character) onto the canonical label. Labels that are not close to any known
// category are returned trimmed but otherwise unchanged.
func NormalizeFaceCategory(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return label
	}

	best := ""
	bestDist := -1
	for _, c := range FaceCategories {
		d := levenshtein.Distance(label, c)
		if d == 0 {
			return c
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	// one edit is only meaningful for labels of comparable length
	if bestDist == 1 && utf8.RuneCountInString(label) >= 2 {
		return best
	}
	return label
}
