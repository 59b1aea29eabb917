package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Upper case without 0/O and 1/I, for codes people read off paper.
const CODE_ALPHABET = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func GenerateCode(n int) (string, error) {
	return gonanoid.Generate(CODE_ALPHABET, n)
}
