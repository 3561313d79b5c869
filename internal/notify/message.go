package notify

import "fmt"

// FormatLowStockMessage renders the body of a low-stock email
func FormatLowStockMessage(inventoryName, itemName string, quantity int) string {
	return fmt.Sprintf(
		"Stock for %q in inventory %q is running low. Current quantity: %d.\n\nPlease restock soon.",
		itemName, inventoryName, quantity,
	)
}

// LowStockSubject renders the subject line of a low-stock email
func LowStockSubject(itemName string) string {
	return fmt.Sprintf("Low stock alert: %s", itemName)
}
