// Package keystate provides the platform hotkey.KeyState used by the
// poller: GetAsyncKeyState sampling on Windows, registered global hotkeys
// on Linux (X11) and macOS.
package keystate
