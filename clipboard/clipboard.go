// Package clipboard copies transcripts to the system clipboard.
package clipboard

import "github.com/atotto/clipboard"

func Copy(text string) error {
	return clipboard.WriteAll(text)
}

func Read() (string, error) {
	return clipboard.ReadAll()
}
