/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package issueform_test

import (
	"fmt"

	"chainguard.dev/placebot/issueform"
)

func ExampleScan() {
	body := "![cafe](https://example.com/cafe.jpg)\n" +
		"https://github.com/user-attachments/assets/abc-123"

	for _, u := range issueform.Scan(body) {
		fmt.Println(u)
	}
	// Output:
	// https://github.com/user-attachments/assets/abc-123
	// https://example.com/cafe.jpg
}

func ExampleIsUpdateTitle() {
	fmt.Println(issueform.IsUpdateTitle("[更新] Seesaw Coffee"))
	fmt.Println(issueform.IsUpdateTitle("[Update] Seesaw Coffee"))
	fmt.Println(issueform.IsUpdateTitle("Seesaw Coffee"))
	// Output:
	// true
	// true
	// false
}
