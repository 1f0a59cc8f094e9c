// Package authstore implements the auth.UserStore and singleuse.Store
// contracts on PostgreSQL via pgx. Schema DDL lives in schema.sql.
//
// The store leans on the database for the two atomicity guarantees the
// services depend on: token consumption is a single conditional UPDATE
// checking used_at IS NULL, and login-failure accounting is a single
// UPDATE with no read-modify-write window.
package authstore
