// Package app is the dependency-injection root shared by cmd/webcryptogwd
// and cmd/webcryptogwctl: it builds the concrete store backend, the local
// identity, the provider registry, and the dispatcher from a
// config.Daemon, exposing them via App for the command entry points to
// mount transport and discovery on top of.
package app
