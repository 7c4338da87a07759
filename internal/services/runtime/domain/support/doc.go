// Package support declares the type-binding contract every runtime module and
// the aggregating runtime instantiate against.
//
// A runtime fixes its account identifier, block number, nonce, balance and
// claim content types once, as type arguments. Modules are generic over the
// subset of those types they use, so two modules composed into one runtime
// share identical types and a mismatch fails to compile.
package support
