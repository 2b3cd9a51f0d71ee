//go:build devotp

package service

// Built with -tags devotp: development deployments may echo reset codes.
const otpEchoCompiled = true
