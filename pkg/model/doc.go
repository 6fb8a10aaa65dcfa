// Package model defines the database models for jinbot's postgres store.
//
// # Database Schema
//
//   - likes: one row per reaction, append-only
//   - settings: key/value pairs (the bound group chat id lives here)
//
// The schema is created by the migrations in db/migrations.
package model
