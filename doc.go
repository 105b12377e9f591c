// Package investax computes realized investment profit, tax liability and
// tax-deduction eligibility from a normalized broker statement.
//
// The engine matches each sale against the earliest-acquired open buy lots
// (FIFO), reconstructs the cost basis across currency boundaries and
// corporate actions, applies jurisdiction tax rates and the long-term
// ownership exemption, and aggregates the result per tax-payment period.
package investax
