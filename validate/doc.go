// Package validate turns loosely typed caller arguments into canonical api
// inputs.
//
// Every validator is a pure function that returns a Result: Valid with the
// canonical value, or Invalid with every violated rule in order. Nothing in
// this package performs I/O, so an Invalid result always means no request was
// sent.
//
//	res := validate.Pagination(nil, &maxResults)
//	page, err := res.Unwrap()
//	if err != nil {
//		var verr *validate.ValidationError
//		errors.As(err, &verr) // verr.Errors lists field and message pairs
//	}
//
// Validation is idempotent: Recheck on a value produced here is always Valid
// and returns the value unchanged.
package validate
