// bg-remover detects the background colour of product photos from their
// corners and removes it through the vectorizer.ai API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
