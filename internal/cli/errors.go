package cli

import "errors"

var errNothingInserted = errors.New("nothing inserted (unknown node or outline root)")

type nodeNotFoundError struct {
	id string
}

func (e nodeNotFoundError) Error() string {
	return "node not found: " + e.id
}
