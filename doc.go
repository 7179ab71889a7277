/*
Dposd is a delegated proof of stake ledger node written in Go.

It keeps the account ledger, verifies and applies the blocks forged by the
active delegates in their slots, closes rounds by distributing fees and
rewards, and holds received transactions in a pool until they are forged.

Usage:

	dposd [OPTIONS]

For an up-to-date help message:

	dposd --help

The long form of all option flags (except -C) can be specified in a configuration
file. By default, the configuration file is located at ~/.dposd/dposd.conf. The
-C (--configfile) flag can be used to override this location.
*/
package main
