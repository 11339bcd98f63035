// Package customer implements customer record management.
//
// The service layer contains validation and business logic for customer
// CRUD. It depends on the Repository interface defined in this package and
// should never import from api/.
//
// Repository implementations live in repository/postgres/.
package customer
