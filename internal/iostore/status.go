package iostore

import (
	"fmt"

	"github.com/prismscan/prism/schema"
)

// PrintStoreStatus prints storage backend status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Storage Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Analyses: %d\n", status.TotalAnalyses)
	if status.TotalAnalyses > 0 {
		fmt.Printf("Last Analysis: %s\n", status.LastAnalysisTime.Format("2006-01-02 15:04:05"))
	}
	if len(status.TableSizes) > 0 {
		fmt.Println("Table Sizes:")
		for table, size := range status.TableSizes {
			fmt.Printf("  %s: %d rows\n", table, size)
		}
	}
}
