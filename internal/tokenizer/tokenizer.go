// Package tokenizer turns raw text into stems. Text is NFD-normalized, every
// rune that is not a letter or whitespace is dropped, the rest is lower-cased
// and split on whitespace, and each word is reduced with the English Snowball
// stemmer.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// Token is a stem and its 1-based position in the text it came from.
type Token struct {
	Term     string
	Position int
}

// Clean normalizes text and strips everything but letters and whitespace.
func Clean(text string) string {
	text = norm.NFD.String(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// Parse cleans text and splits it into words.
func Parse(text string) []string {
	return strings.Fields(Clean(text))
}

// Stem reduces a single cleaned word to its root.
func Stem(word string) string {
	return english.Stem(word, true)
}

// ListStems returns the stem of every word in text, in order.
func ListStems(text string) []string {
	words := Parse(text)
	stems := make([]string, 0, len(words))
	for _, word := range words {
		if s := Stem(word); s != "" {
			stems = append(stems, s)
		}
	}
	return stems
}

// UniqueStems returns the sorted, de-duplicated stems of text.
func UniqueStems(text string) []string {
	stems := ListStems(text)
	sort.Strings(stems)
	out := stems[:0]
	for i, s := range stems {
		if i == 0 || s != stems[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// Tokenize stems text and numbers the stems from start.
func Tokenize(text string, start int) []Token {
	stems := ListStems(text)
	tokens := make([]Token, len(stems))
	for i, s := range stems {
		tokens[i] = Token{Term: s, Position: start + i}
	}
	return tokens
}

// ScanStems reads r line by line and calls fn with every stem and its
// position, counting from 1 across the whole stream.
func ScanStems(r io.Reader, fn func(stem string, position int)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	position := 1
	for scanner.Scan() {
		for _, token := range Tokenize(scanner.Text(), position) {
			fn(token.Term, token.Position)
			position = token.Position + 1
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning text: %w", err)
	}
	return nil
}
