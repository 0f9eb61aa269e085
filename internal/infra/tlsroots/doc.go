// Package tlsroots builds the TLS client settings used to reach WizNote
// servers: the system roots plus private CAs from a file or directory,
// and an optional client certificate for servers behind mutual TLS.
package tlsroots
