package common

import (
	"regexp"
	"strings"
	"unicode"
)

// SplitArgs splits a command line on whitespace. Double-quoted text forms one argument.
func SplitArgs(line string) []string {
	var args []string
	var current strings.Builder
	inQuotes, hasToken := false, false

	flush := func() {
		if hasToken {
			args = append(args, current.String())
		}
		current.Reset()
		hasToken = false
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case unicode.IsSpace(r) && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}
	flush()
	return args
}

var (
	userMentionPattern    = regexp.MustCompile(`^<@!?(\d+)>$`)
	roleMentionPattern    = regexp.MustCompile(`^<@&(\d+)>$`)
	channelMentionPattern = regexp.MustCompile(`^<#(\d+)>$`)
	snowflakePattern      = regexp.MustCompile(`^\d{15,21}$`)
)

// ParseUserID accepts a user mention or a raw snowflake id
func ParseUserID(arg string) (string, bool) {
	if m := userMentionPattern.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if snowflakePattern.MatchString(arg) {
		return arg, true
	}
	return "", false
}

// ParseRoleID accepts a role mention or a raw snowflake id
func ParseRoleID(arg string) (string, bool) {
	if m := roleMentionPattern.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if snowflakePattern.MatchString(arg) {
		return arg, true
	}
	return "", false
}

// ParseChannelID accepts a channel mention or a raw snowflake id
func ParseChannelID(arg string) (string, bool) {
	if m := channelMentionPattern.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if snowflakePattern.MatchString(arg) {
		return arg, true
	}
	return "", false
}
