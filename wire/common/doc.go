// Package common provides utilities shared across the wire-protocol
// module, currently the custom logging setup used by the batch decoder and
// the CLI. The codec functions themselves are purely functional and never
// log.
package common
