// Package driver implements the Driver aggregate: vehicle capability,
// serviceable zones, availability flags, ranking inputs and the last reported
// position with its staleness rule. Route reservations go through the
// active-route counter so the repository can commit them with a
// compare-and-set.
package driver
