// Package logging configures zerolog for jsonstore.
//
// Libraries stay silent by default: until SetupLogger or SetLogger is
// called, GetLogger hands out loggers that discard everything.
package logging
