package main

// Build-time variable (injected via ldflags)
var version = "dev"
