// Package reflection turns data objects into transport-ready mappings and
// describes their shape for schema consumers.
//
// A data object is any value exposing exported, argument-free accessors named
// with the Get/Has/Is convention:
//
//	func (o *Order) GetId() int
//	func (o *Order) GetCustomer() *Customer
//	func (o *Order) IsPaid() bool
//
// Go carries no documentation at runtime, so every registered type declares
// the contract of its accessors through a [TypeDoc]: the declared return type
// list ("Customer|null", "OrderItem[]"), a description and a summary. The
// [Catalog] collects registered types and their docs; [MethodsMap] caches the
// accessor metadata per type; [TypeProcessor] builds the flat registry of
// complex types; [DataObjectProcessor] walks live objects into [Data].
package reflection
