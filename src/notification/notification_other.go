//go:build !windows

package notification

// showMessageBox has no dialog backend here; the caller already logged.
func showMessageBox(title, message string, isError bool) error {
	return nil
}
