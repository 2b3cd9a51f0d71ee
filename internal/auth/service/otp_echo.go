//go:build !devotp

package service

const otpEchoCompiled = false
