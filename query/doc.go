// Package query turns GraphQL documents into fetch requests.
//
// Parse reads a document with gqlparser, picks one operation and flattens its
// selection set into a normalize.SelectionSet: aliases become response keys,
// arguments are evaluated against the request variables and their declared
// defaults, fragment spreads and inline fragments are merged into their parent
// and @skip/@include are applied. No schema is consulted, so type conditions
// on fragments are not checked.
package query
