// Package config parses env-tagged structs from the process
// environment, loading a .env file first when one exists.
//
// Each struct type is parsed once per process and cached, so every
// package can call Load for its own Config without coordinating with
// the rest of the application.
package config
