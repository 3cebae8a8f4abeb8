// Package shop is a small member and order domain wired through the
// container: a member repository shared by two services and two discount
// policies competing for one role.
package shop
