//go:build !gui

package main

func initGUI() {
	panic("scout: built without GUI support (rebuild with -tags gui)")
}
