// Package fixtures builds assets, reservations, clocks and booking rules for tests.
// Every fixture lives in the Europe/Vilnius business timezone with "today" at 2025-10-01.
package fixtures
