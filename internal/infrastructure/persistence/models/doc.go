// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no GORM tags; every model here converts to and from its
// domain type with ToDomain / FromDomain.
//
// Value collections that are always read together with their owner (ontology
// terms, experimental designs, per-sample measurement metadata) are stored as
// JSON columns through GORM's json serializer.
package models
