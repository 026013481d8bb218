// Package pkginfo reads unpacked pacman packages: the .PKGINFO and
// .BUILDINFO metadata files, the gzipped .MTREE file list, and directories
// of such packages.
//
// # Metadata files
//
// Both metadata formats are line oriented:
//
//	# Generated by makepkg 6.1.0
//	pkgname = bash
//	pkgver = 5.2.037-1
//	depend = readline>=7.0
//	depend = glibc
//
// Comment lines and blank lines are ignored. Every other line must contain
// the " = " separator and a key the format defines. Repeatable keys
// (depend, provides, arch, ...) accumulate in order.
//
// # Package directories
//
// A package directory must be non-empty and contain .MTREE and .PKGINFO;
// see [ValidateDir]. [FromDir] loads one, and [OpenDB] loads every package
// directory below a root into a [DB], which can then serve as the
// dependency source and catalog for the resolver.
package pkginfo
