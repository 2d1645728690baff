//go:build windows

package cli

import (
	"golang.org/x/sys/windows"
)

const dialogTitle = "Melee DAT Editor"

// reportFatal shows err in a message box. The launcher is linked for the
// GUI subsystem and has no console to print to.
func reportFatal(err error) {
	text, convErr := windows.UTF16PtrFromString(err.Error())
	if convErr != nil {
		return
	}
	title, convErr := windows.UTF16PtrFromString(dialogTitle)
	if convErr != nil {
		return
	}
	windows.MessageBox(0, text, title, windows.MB_OK|windows.MB_ICONERROR)
}
