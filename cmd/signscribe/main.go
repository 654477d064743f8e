// Command signscribe turns fingerspelled letters seen by the webcam into text
// and speech.
package main

func main() {
	Execute()
}
