package domain

// KeyPrefix namespaces every key this service writes to a shared store.
const KeyPrefix = "schemesearch:"

// DefaultTopK is the number of neighbors requested per query.
const DefaultTopK = 5

// MaxTopK bounds a configured top-k.
const MaxTopK = 100

// RootMessage is returned by the readiness route.
const RootMessage = "Government Scheme Recommendation API is running"
