// Package lockstep provides an embeddable lock-step streaming server and
// its matching client driver.
//
// The server accepts WebSocket sessions on /ws. Each session is strictly
// request/acknowledge: the server reads one text message, waits the
// processing delay, and replies "Processed: " followed by the message.
// Alongside it, /upload-file/ stores multipart file submissions in an
// upload directory, overwriting files of the same name.
//
// # Basic Usage
//
//	srv, err := lockstep.New(lockstep.Config{ListenAddr: "127.0.0.1:8000"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop()
//
// The processing delay may be changed while sessions run:
//
//	srv.SetProcessingDelay(250 * time.Millisecond)
//
// # Driver
//
// [Driver] performs one session of Start plus N updates, then uploads one
// file:
//
//	d, err := lockstep.NewDriver(lockstep.DriverConfig{
//	    ServerURL: "http://localhost:8000",
//	    File:      "sample2.txt",
//	})
//	report, err := d.Run(ctx)
//
// A session the server cuts short is not an error; see [Report].
//
// # Lifecycle States
//
// A server moves through Stopped, Starting, Serving and Draining. A failure
// while starting or serving moves it to Failed, from which Start may be
// called again.
package lockstep
