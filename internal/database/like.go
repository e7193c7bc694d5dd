package database

import "strings"

// LikeEscape is the escape character paired with Contains patterns. It is
// not a backslash so the clause reads the same on mysql and postgres.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Contains returns a lower-cased substring pattern for
// "LOWER(col) LIKE ? ESCAPE '!'" with LIKE wildcards in s matched literally.
func Contains(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}

// ContainsClause is the condition Contains patterns are meant for.
func ContainsClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '" + LikeEscape + "'"
}
