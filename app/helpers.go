package app

import (
	"fmt"
	"strconv"
	"strings"

	"example/chess-history/app/models"
)

// converts string to int safely
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%q is not positive", s)
	}
	return n, nil
}

// parseSelection builds a Selection from query values. Month accepts "3" or "03".
func parseSelection(year, month, locator string) (models.Selection, error) {
	var sel models.Selection
	sel.URL = strings.TrimSpace(locator)
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y <= 0 {
			return sel, fmt.Errorf("%w: year %q", ErrInvalidSelection, year)
		}
		sel.Year = y
	}
	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil {
			return sel, fmt.Errorf("%w: month %q", ErrInvalidSelection, month)
		}
		sel.Month = m
	}
	if sel.Kind() == models.SelectInvalid {
		return sel, fmt.Errorf("%w: %s", ErrInvalidSelection, sel)
	}
	return sel, nil
}
