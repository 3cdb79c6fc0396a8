// Package expression parses and evaluates {{ ... }} mapping expressions.
//
// A template is literal text interleaved with expression spans:
//
//	Hello {{ $json.user.firstName }}, your order {{ nodes.shop.orders[0].id }} shipped.
//
// Each span holds a path rooted at one of:
//
//	$json              current-step input
//	trigger            the trigger payload
//	nodes.<name>       output of a prior node
//	$node["<name>"]    output of a prior node, by display name
//	$env.<KEY>         environment variable
//	$now               resolution-time instant
//	$randomId          fresh identifier on every call
//
// followed by any number of .field, [0] or ["key"] accessors.
//
// Missing data never fails resolution: the span resolves to the Unresolved
// marker (or keeps its original text inside mixed templates). Only malformed
// syntax is reported, as ErrSyntax.
package expression
