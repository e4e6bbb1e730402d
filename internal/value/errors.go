package value

import "errors"

var errRowCannotNest = errors.New("value: a row cannot contain a row or rows")
