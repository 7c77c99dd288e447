package util

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const dateLen = len("2006-01-02")

func GetIDFromString(str *string) string {
	hasher := sha1.New()
	hasher.Write([]byte(*str))

	return hex.EncodeToString(hasher.Sum(nil))
}

// DateOnly keeps the calendar-date part of an RFC 3339 timestamp.
func DateOnly(ts string) string {
	if len(ts) <= dateLen {
		return ts
	}

	return ts[:dateLen]
}

// CleanText drops invalid UTF-8 sequences and trims surrounding whitespace.
func CleanText(data []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(data), ""))
}

func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// JoinLabel extends a folder path label with a child folder name.
func JoinLabel(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "/" + name
}
