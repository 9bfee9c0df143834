// Package models defines the core domain records for circleledger.
//
// # Records
//
//   - User: a person who can pay for or owe toward expenses
//   - Group: a circle of users sharing expenses, with a settlement Mode
//   - Expense: one payment by a group member, split among participants
//   - ExpenseSplit: the amount one user owes toward an expense
//   - Settlement: a payment from one member to another that reduces debt
//
// # Design Principles
//
// 1. **Integer money**: every amount is a money.Amount in minor units
// 2. **Append-only history**: expenses and settlements are never mutated
// 3. **Derived balances**: nothing here stores a balance; the calculator derives them
// 4. **IDs over pointers**: relationships are ID strings, never nested records
package models
