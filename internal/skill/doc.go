// Package skill defines the data model shared by the selection engine:
// skill documents, priority tiers, task contexts, scored candidates and
// selection results.
//
// Documents are values. Once a [Document] has been handed to the registry it
// is treated as immutable; every component downstream of the registry only
// reads it.
package skill
