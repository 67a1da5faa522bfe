// Package models contains the GORM database models mirroring the domain
// entities. Keeping them separate from the domain keeps persistence tags and
// schema concerns out of the business types.
package models
