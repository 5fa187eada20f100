// Varmista - Deployment Preflight Governance
// Verify. Then deploy.
package main

func main() {
	Execute()
}
