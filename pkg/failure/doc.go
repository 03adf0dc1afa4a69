// Package failure defines the closed error taxonomy of the data-access core
// and the classifier that turns transport errors into it.
//
// # Taxonomy
//
// Every Failure has a Kind:
//
//   - KindNetwork: transport or HTTP problems, refined by a Code
//     (CodeTimeout, CodeNotFound, CodeServiceUnavailable, ...)
//   - KindCache: the local store failed
//   - KindAuth: credentials or authorization
//   - KindValidation: field-level problems, see Failure.Fields
//   - KindGeneric: anything unclassified
//
// # Classification
//
// Remote data sources report failures as *TransportError values. Classify
// accepts any error and always returns a Failure:
//
//	f := failure.Classify(err)
//	if errors.Is(f, failure.Network(failure.CodeNotFound)) {
//	    // ...
//	}
//
// A JSON response body of the form {"message": "..."} or {"error": "..."}
// replaces the default message of the resulting failure.
package failure
