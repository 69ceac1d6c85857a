// Command searchcrawler crawls, indexes and serves search results for a
// set of seed pages.
package main

func main() {
	Execute()
}
