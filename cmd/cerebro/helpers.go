package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

func countNoun(count int, singular, plural string) string {
	noun := plural
	if count == 1 {
		noun = singular
	}
	return countPrinter.Sprintf("%d %s", count, noun)
}
