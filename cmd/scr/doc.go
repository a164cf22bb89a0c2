// Package main is the scr command: a thin command-line driver over the scr
// library.
//
// It fetches a page (or parses a fragment given on the command line), runs a
// CSS selector or XPath expression against it and prints each result on its
// own line. With -download it saves a remote file instead.
//
// Configuration:
//   - Environment variables (SCR_*, LOG_LEVEL, LOG_DEV)
//   - Optional YAML file (-config), overriding the environment
//   - CLI flags, overriding both
//
// Usage:
//
//	# First product name
//	scr -url scrapeme.live/shop/ -selector 'main#main>ul>li.product>a>h2'
//
//	# Every product link
//	scr -url scrapeme.live/shop/ -selector 'li.product>a' -attr href -all
//
//	# XPath over a fragment
//	scr -fragment '<a>Bulbasaur</a>' -xpath '//a'
//
//	# Download an image as some_png.png
//	scr -url scrapeme.live/wp-content/uploads/2018/08/001.png -download some_png -type png
//
// Exit status is 0 on success, 1 when an operation fails and 2 on usage errors.
package main
